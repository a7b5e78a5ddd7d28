package encoder

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is the default codec, wire-compatible with encoding/json.
var JSON MsgProto = jsonProto{api: jsoniter.ConfigCompatibleWithStandardLibrary}

type jsonProto struct {
	api jsoniter.API
}

func (p jsonProto) Marshal(v interface{}) ([]byte, error) {
	return p.api.Marshal(v)
}

func (p jsonProto) Unmarshal(data []byte, v interface{}) error {
	return p.api.Unmarshal(data, v)
}
