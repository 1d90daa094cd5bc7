/*
Testbed application exercising the engine package. Renders two textured
cubes whose resources are bound through push descriptors.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/vesta-engine/vesta/engine"
	"github.com/vesta-engine/vesta/testbed"
)

func main() {
	tb, err := testbed.NewTestGame()
	if err != nil {
		panic(err)
	}

	app, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := app.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		app.RequestShutdown()
	}()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
