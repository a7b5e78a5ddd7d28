package wconn

// Handler reacts to one data frame. It runs on the connection's read
// goroutine, so frames from one client are never handled concurrently.
// kind is websocket.TextMessage or websocket.BinaryMessage.
type Handler interface {
	Response(client *Client, kind int, data []byte) error
}

type Protocol interface {
	OnClientRegister(client *Client) (closed bool)

	OnClientUnregister(client *Client)

	Handler
}

type Logger interface {
	Println(msg string, v ...interface{})
	Debugln(msg string, v ...interface{})
}
