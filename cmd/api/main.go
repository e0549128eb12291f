package main

import (
	_ "taprelay/docs"
	"taprelay/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Tap Payment Relay API
// @version         1.0
// @description     Stateless relay forwarding tokenized payments to the Tap charge API.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3001

// @BasePath  /api

func main() {
	routes.Run()
}
