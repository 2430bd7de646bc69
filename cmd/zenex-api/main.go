package main

import (
	"fmt"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/routes"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}

	if err := mq_client.Connect(); err != nil {
		fmt.Println(err.Error())
		return
	}

	r := routes.SetupRouter()
	// running
	r.Listen(":3000")
}
