package wconn

// EchoHandler sends every frame back as is.
type EchoHandler struct{}

func (echo *EchoHandler) Response(client *Client, kind int, data []byte) error {
	return client.SendFrame(kind, data)
}
