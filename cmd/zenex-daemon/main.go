package main

import (
	"fmt"
	"os"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/workers/daemons"
)

func CreateWorker(id string) daemons.Worker {
	switch id {
	case "cron_job":
		return daemons.NewCronJob()
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	if err := mq_client.Connect(); err != nil {
		fmt.Println(err.Error())
		return
	}

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start zenex-daemon: " + id)
		worker := CreateWorker(id)

		if worker == nil {
			fmt.Println("Unknown daemon: " + id)
			continue
		}

		worker.Start()
	}
}
