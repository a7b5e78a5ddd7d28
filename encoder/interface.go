// Package encoder holds the codecs used for the HTTP side of the server.
package encoder

type MsgProto interface {
	Marshal(interface{}) ([]byte, error)

	Unmarshal([]byte, interface{}) error
}
