// A small end-to-end tour: schema declaration, file and environment sources,
// the public/private partition, and a reload.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/confgate/confgate"
)

const configFile = "confgate-example.toml"

func main() {
	// Write a config file for the file source to pre-load.
	data := []byte("[service]\nbaseurl = \"https://example.org\"\n\n[server]\nport = \"9090\"\n")
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		log.Fatal(err)
	}
	defer os.Remove(configFile)

	// Environment outranks the file.
	os.Setenv("APP_SERVER_PORT", "8081")
	defer os.Unsetenv("APP_SERVER_PORT")

	fileSrc, err := confgate.NewFileSource(confgate.RankFile, configFile)
	if err != nil {
		log.Fatal(err)
	}

	eng, err := confgate.NewBuilder().
		WithSchema(
			confgate.SchemaEntry{Path: "service.baseurl", Type: confgate.TypeString, Visibility: confgate.Public},
			confgate.SchemaEntry{Path: "server.port", Type: confgate.TypeNumber, Default: 8080, Visibility: confgate.Public},
			confgate.SchemaEntry{Path: "apikey", Type: confgate.TypeString, Default: "dev-key", Visibility: confgate.Private},
		).
		WithSource(fileSrc).
		WithEnvNamespace("APP").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	snap := eng.Current()
	port, _ := snap.Number("server.port")
	fmt.Printf("version %d, server.port = %v (env beat file)\n", snap.Version(), port)

	// The public view never carries the private key, even though the full
	// accessor sees it.
	if _, ok := snap.Get("apikey"); ok {
		fmt.Println("full view contains apikey (server-side only)")
	}
	publicJSON, _ := snap.PublicJSON()
	fmt.Printf("public JSON for the client: %s\n", publicJSON)

	// Reload publishes a fresh snapshot; holders of the old one are unaffected.
	os.Setenv("APP_SERVER_PORT", "8082")
	eng.ReplaceSources(fileSrc, confgate.NewEnvSource("APP"))
	version, err := eng.Reload()
	if err != nil {
		log.Fatal(err)
	}
	newPort, _ := eng.Current().Number("server.port")
	fmt.Printf("reloaded to version %d, server.port = %v; old snapshot still says %v\n",
		version, newPort, port)
}
