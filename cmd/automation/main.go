// Command automation ejecuta los jobs de automatización del ERP: recordatorios de tareas,
// reglas de inactividad, alertas de stock y facturas, licencias y el flujo cotización → pedido.
//
//	@title						ERP Automation API
//	@version					1.0
//	@description				API de operación de los jobs de automatización: listado y ejecución manual.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http,../../internal/application/dto,../../internal/application/job -o ../../docs

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
