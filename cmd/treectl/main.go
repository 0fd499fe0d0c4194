// Command treectl administra el árbol de categorías desde la terminal: migraciones,
// impresión del bosque, auditoría de invariantes y exportaciones.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
