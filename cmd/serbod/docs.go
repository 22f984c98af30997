package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           serbod API
// @version         1.0
// @description     HTTP API for supervising game server processes.
//
// @contact.name   serbod maintainers
// @contact.url    https://github.com/your-org/serbod
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
