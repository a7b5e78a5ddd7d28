package wsecho

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Serves ./public and echoes WebSocket messages on :8080.
// In a browser console:
// ws1 = new WebSocket("ws://localhost:8080/");
// ws1.onmessage = (evt)=>console.log("received:", evt.data);
// ws1.onclose = (evt)=>console.log("ws closed", evt);
// ws1.send("hello")  // received: hello
// ws1.send("term")   // ws closed, code 1006
func Example() {
	s := NewServer("public", nil)
	logger := s.Logger
	server := s.ListenAndServe(":8080")
	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Println("shutdown failed", "err", err)
	} else {
		logger.Println("server stopped")
	}
	s.Close()
}
