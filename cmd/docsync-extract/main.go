// Command docsync-extract prints the methods each extraction strategy finds
// in a PHP file, side by side, without calling the generation service.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mvp-joe/docsync/internal/extract"
)

func main() {
	path := "testdata/code/php/user_service.php"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	for _, strategy := range []extract.Strategy{extract.StrategyRegex, extract.StrategyTreeSitter} {
		extractor, err := extract.New(strategy)
		if err != nil {
			log.Fatal(err)
		}
		_, methods, err := extract.ExtractFile(extractor, path)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("=== %s ===\n", strategy)
		fmt.Printf("Count: %d\n", len(methods))
		for _, m := range methods {
			doc := ""
			if m.HasDocblock() {
				doc = " [docblock]"
			}
			fmt.Printf("  %s (offset %d-%d)%s\n", m.Signature(), m.StartPosition, m.EndPosition, doc)
		}
		fmt.Println()
	}
}
