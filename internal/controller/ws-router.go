package controller

import (
	"github.com/sharetube/mediasync/internal/protocol"
	"github.com/sharetube/mediasync/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, protocol.TypeAlive, c.handleAlive)
	wsrouter.Handle(mux, protocol.TypeWriteAttributes, c.handleWriteAttributes)
	wsrouter.Handle(mux, protocol.TypeRemoveInstance, c.handleRemoveInstance)

	return mux
}
