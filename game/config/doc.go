// Package config provides message catalogs and server settings for the
// naval battle server.
//
// Message Catalogs:
//
// Every line the server sends to a player comes from a Catalog: a JSON
// document of text/template strings keyed by message class (welcome,
// shot outcome, turn announcements, rejections...). The "classic" English
// catalog is embedded in the binary. Additional catalogs, such as the
// Portuguese "pt_br" wording of the classic protocol, are read from the
// configured directory and override built-in ones of the same name.
//
// Templates are executed with a Data value:
//
//	=== PLAYER {{.Player}} ({{.Name}}) FIRED AT {{.X}} {{.Y}}: {{.Result}} ===
//
// Validation:
//
// Catalogs are checked with go-playground/validator for required messages
// and then compiled; a template that fails to parse or references an
// unknown field makes the whole catalog invalid.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	catalog, err := manager.Load("pt_br")
//	line, err := catalog.Render(config.KeyWelcome, config.Data{Player: 1, Name: "ana"})
//
// Settings holds the listener addresses, match limits and storage options
// assembled by the CLI, validated the same way.
package config
