package main

import "practicehub/internal/app/server"

func main() {
	server.Run()
}
