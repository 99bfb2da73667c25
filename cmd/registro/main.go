// Command registro administra el registro de escuelas desde la línea de comandos:
// carga masiva, exportación, plantilla, migraciones, tokens y encolado de importaciones.
package main

func main() {
	Execute()
}
