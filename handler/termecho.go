// Package handler holds the per-connection message protocols served by the hub.
package handler

import (
	"github.com/gorilla/websocket"

	"github.com/ForeverZi/wsecho/wconn"
)

// TermWord is the text message that makes the server drop a connection.
const TermWord = "term"

// TermEcho echoes every frame back to its sender, except the exact text
// frame TermWord, which terminates the connection instead.
type TermEcho struct {
	Logger wconn.Logger
}

func NewTermEcho(logger wconn.Logger) *TermEcho {
	return &TermEcho{Logger: logger}
}

func (h *TermEcho) OnClientRegister(client *wconn.Client) (closed bool) {
	h.Logger.Println("websocket connection open", "id", client.GetID(), "remote", client.RemoteAddr())
	return false
}

func (h *TermEcho) OnClientUnregister(client *wconn.Client) {
	h.Logger.Println("websocket connection close", "id", client.GetID())
}

func (h *TermEcho) Response(client *wconn.Client, kind int, data []byte) error {
	if kind == websocket.TextMessage {
		h.Logger.Println("message received", "id", client.GetID(), "payload", string(data))
		if string(data) == TermWord {
			client.Terminate()
			return nil
		}
	} else {
		h.Logger.Println("message received", "id", client.GetID(), "bytes", len(data))
	}
	if err := client.SendFrame(kind, data); err != nil {
		h.Logger.Debugln("echo dropped", "id", client.GetID(), "err", err)
	}
	return nil
}
