package wconn

import (
	"net/http"
	"sync/atomic"
	"time"
)

var defaultOptions = []Option{
	BufferSize(1024, 1024),
	AnyOrigin(),
	AutoIncUID(),
	ClientSendSize(32),
	WriteTimeout(10 * time.Second),
	EchoMsg(),
}

type Option func(conf *HubConf)

func BufferSize(readBufferSize, writeBufferSize int) Option {
	return func(conf *HubConf) {
		conf.upgrader.ReadBufferSize = readBufferSize
		conf.upgrader.WriteBufferSize = writeBufferSize
	}
}

// AnyOrigin accepts upgrades regardless of the Origin header.
func AnyOrigin() Option {
	return func(conf *HubConf) {
		conf.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

func FixedUID(uid int64) Option {
	return func(conf *HubConf) {
		conf.getuid = func(r *http.Request) int64 {
			return uid
		}
	}
}

func CustomerUID(getuid func(*http.Request) int64) Option {
	return func(conf *HubConf) {
		conf.getuid = getuid
	}
}

func AutoIncUID() Option {
	return func(conf *HubConf) {
		var assigned int64
		conf.getuid = func(r *http.Request) int64 {
			return atomic.AddInt64(&assigned, 1)
		}
	}
}

// ClientSendSize is the depth of each client's outbound queue.
func ClientSendSize(size int) Option {
	return func(conf *HubConf) {
		conf.clientSendSize = size
	}
}

// ReadLimit caps the size of one inbound message. Larger messages close the
// connection with 1009. Zero, the default, accepts any size.
func ReadLimit(limit int64) Option {
	return func(conf *HubConf) {
		conf.readLimit = limit
	}
}

// ReadTimeout drops a connection that stays silent for d. Zero waits forever.
func ReadTimeout(d time.Duration) Option {
	return func(conf *HubConf) {
		conf.readTimeout = d
	}
}

func WriteTimeout(d time.Duration) Option {
	return func(conf *HubConf) {
		conf.writeTimeout = d
	}
}

func EchoMsg() Option {
	return func(conf *HubConf) {
		conf.handler = &EchoHandler{}
	}
}

func CustomerMsgHandler(handler Handler) Option {
	return func(conf *HubConf) {
		conf.handler = handler
	}
}

// Breaker terminates a client that sends more than cap messages in a burst,
// refilling one token per period. A zero cap disables it.
func Breaker(cap int, period time.Duration) Option {
	return func(conf *HubConf) {
		conf.breakerCap = cap
		conf.breakerPeriod = period
	}
}

func OnClientRegister(handle func(client *Client) bool) Option {
	return func(conf *HubConf) {
		conf.onClientRegistered = handle
	}
}

func OnClientUnregister(handle func(client *Client)) Option {
	return func(conf *HubConf) {
		conf.onClientUnregistered = handle
	}
}

func ProtocolOption(protocol Protocol) Option {
	return func(conf *HubConf) {
		conf.onClientUnregistered = protocol.OnClientUnregister
		conf.onClientRegistered = protocol.OnClientRegister
		conf.handler = protocol
	}
}

func SetLogger(logger Logger) Option {
	return func(conf *HubConf) {
		conf.logger = logger
	}
}
