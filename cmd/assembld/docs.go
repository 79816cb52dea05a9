package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           assembld API
// @version         1.0
// @description     HTTP API for assembling adapter-augmented local model instances.
//
// @contact.name   assembld maintainers
// @contact.url    https://github.com/your-org/assembld
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
