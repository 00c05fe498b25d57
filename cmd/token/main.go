// token emite un JWT firmado con JWT_SECRET para los endpoints de auditoría.
//
// Uso: go run ./cmd/token -sub auditor -role admin -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-tienda/pkg/config"
	"github.com/jhoicas/inventario-tienda/pkg/jwt"
)

func main() {
	sub := flag.String("sub", "auditor", "subject del token")
	role := flag.String("role", jwt.RoleAdmin, "rol (admin | operador)")
	ttl := flag.Duration("ttl", time.Hour, "vigencia")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *sub, *role, cfg.JWT.Issuer, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
