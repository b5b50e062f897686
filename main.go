/*
Copyright © 2025 DelanoMarcell
*/
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/DelanoMarcell/litigation-chatbot/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
}
