package core

import (
	"encoding/json"

	"github.com/anoideaopen/tipledger/core/contract"
	"github.com/anoideaopen/tipledger/version"
)

func operationalMethods() map[contract.Function]contract.Method {
	query := func(fn string, h contract.Handler) contract.Method {
		return contract.Method{Type: contract.MethodTypeQuery, ChaincodeFunc: fn, Handler: h}
	}

	return map[contract.Function]contract.Method{
		"buildInfo": query("buildInfo", func(*contract.Call, []string) ([]byte, error) {
			bi, err := version.BuildInfo()
			if err != nil {
				return nil, err
			}
			return json.Marshal(bi)
		}),
		"coreChaincodeIDName": query("coreChaincodeIDName", func(*contract.Call, []string) ([]byte, error) {
			return json.Marshal(version.CoreChaincodeIDName())
		}),
		"systemEnv": query("systemEnv", func(*contract.Call, []string) ([]byte, error) {
			return json.Marshal(version.SystemEnv())
		}),
		"config": query("config", func(call *contract.Call, _ []string) ([]byte, error) {
			return json.Marshal(call.Config)
		}),
	}
}
