// Package server runs bound pages on the server and exposes them over HTTP
// and WebSocket.
//
// Every WebSocket connection gets its own session: a private parse of the
// page, its stores and its effects. Clients write state and receive the
// re-rendered page:
//
//	-> {"op":"set","id":1,"target":"count","state":"count","value":4}
//	<- {"op":"render","id":1,"html":"..."}
//
//	-> {"op":"get","id":2,"target":"count","state":"count"}
//	<- {"op":"value","id":2,"target":"count","state":"count","value":4}
//
// Usage:
//
//	srv := server.New(nil, server.Options{Page: page, Metrics: telemetry.NewMetrics()})
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err := srv.Run(ctx)
package server
