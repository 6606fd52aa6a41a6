package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/invopop/jsonschema"

	"github.com/pocketsignal/toolkit/psdev/utils"
)

// Emits the JSON schema for the workspace's bootstrap.yaml manifest.
func main() {
	var reflector jsonschema.Reflector
	reflector.RequiredFromJSONSchemaTags = true
	schema := reflector.Reflect(&utils.SetupConfig{})
	content, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema to JSON")
	}

	fmt.Printf("%s\n", content)
}
