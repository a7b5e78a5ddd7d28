package wconn

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ForeverZi/wsecho/log"
)

var (
	ErrUnknownCommand = errors.New("unknown hub command")
	ErrInvalidArgs    = errors.New("invalid hub command args")
	ErrInvalidChan    = errors.New("command result channel must be buffered")
	ErrHubClosed      = errors.New("hub closed")
)

type HubConf struct {
	upgrader             websocket.Upgrader
	getuid               func(r *http.Request) int64
	clientSendSize       int
	readLimit            int64
	readTimeout          time.Duration
	writeTimeout         time.Duration
	handler              Handler
	breakerCap           int
	breakerPeriod        time.Duration
	onClientRegistered   func(client *Client) bool
	onClientUnregistered func(client *Client)
	logger               Logger
}

// Hub tracks the live clients. Only the Run goroutine touches pool.
type Hub struct {
	registerChan   chan *Client
	unregisterChan chan *Client
	commandChan    chan Command
	quit           chan struct{}
	stopped        chan struct{}
	closeOnce      sync.Once
	pool           map[int64]*Client
	conf           HubConf
}

type CommandOP int

const (
	ONLINE_COUNT_COMMAND CommandOP = iota
	GET_CLIENT_COMMAND
)

type Command struct {
	OP   CommandOP
	Args interface{}
	// must be buffered so the hub loop never blocks on it
	Result chan interface{}
}

func NewHub(options ...Option) *Hub {
	hub := Hub{
		registerChan:   make(chan *Client),
		unregisterChan: make(chan *Client),
		commandChan:    make(chan Command, 20),
		quit:           make(chan struct{}),
		stopped:        make(chan struct{}),
		pool:           make(map[int64]*Client),
	}
	for _, option := range defaultOptions {
		option(&hub.conf)
	}
	for _, option := range options {
		option(&hub.conf)
	}
	if hub.conf.logger == nil {
		hub.conf.logger = log.New()
	}
	go hub.Run()
	hub.conf.logger.Println("websocket server created")
	return &hub
}

// SendCommand queues a command. The result is either an error or the value
// the command promises.
func (hub *Hub) SendCommand(command Command) error {
	if cap(command.Result) < 1 {
		return ErrInvalidChan
	}
	select {
	case hub.commandChan <- command:
		return nil
	case <-hub.quit:
		return ErrHubClosed
	}
}

func (hub *Hub) query(op CommandOP, args interface{}) (interface{}, error) {
	command := Command{OP: op, Args: args, Result: make(chan interface{}, 1)}
	if err := hub.SendCommand(command); err != nil {
		return nil, err
	}
	select {
	case res := <-command.Result:
		if err, ok := res.(error); ok {
			return nil, err
		}
		return res, nil
	case <-hub.stopped:
		return nil, ErrHubClosed
	}
}

func (hub *Hub) OnlineCount() (int, error) {
	res, err := hub.query(ONLINE_COUNT_COMMAND, nil)
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// GetClient returns nil when no live client has the id.
func (hub *Hub) GetClient(id int64) (*Client, error) {
	res, err := hub.query(GET_CLIENT_COMMAND, id)
	if err != nil {
		return nil, err
	}
	return res.(*Client), nil
}

func (hub *Hub) handleCommand(command *Command) {
	switch command.OP {
	default:
		command.Result <- ErrUnknownCommand
	case ONLINE_COUNT_COMMAND:
		command.Result <- len(hub.pool)
	case GET_CLIENT_COMMAND:
		if id, ok := command.Args.(int64); ok {
			command.Result <- hub.pool[id]
		} else {
			command.Result <- ErrInvalidArgs
		}
	}
}

func (hub *Hub) Run() {
	defer close(hub.stopped)
	for {
		select {
		case command := <-hub.commandChan:
			hub.handleCommand(&command)
		case client := <-hub.registerChan:
			if old, ok := hub.pool[client.id]; ok && old != client {
				hub.conf.logger.Println("replacing client", "id", client.id)
				old.conn.Close()
			}
			hub.pool[client.id] = client
		case client := <-hub.unregisterChan:
			// a replaced client must not evict its successor
			if hub.pool[client.id] == client {
				delete(hub.pool, client.id)
			}
		case <-hub.quit:
			for id, client := range hub.pool {
				client.conn.Close()
				delete(hub.pool, id)
			}
			return
		}
	}
}

// Close terminates every live connection and stops the hub. Upgrades
// arriving afterwards are dropped.
func (hub *Hub) Close() {
	hub.closeOnce.Do(func() {
		close(hub.quit)
	})
	<-hub.stopped
}

func (hub *Hub) unregister(client *Client) {
	select {
	case hub.unregisterChan <- client:
	case <-hub.quit:
	}
}

func (hub *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := hub.conf.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.conf.logger.Println("upgrade fail", "err", err)
		return
	}
	client := newClient(hub, conn, hub.conf.getuid(r))
	select {
	case hub.registerChan <- client:
	case <-hub.quit:
		conn.Close()
		return
	}
	client.serve()
}
