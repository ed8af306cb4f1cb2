// Command create_tables drops and recreates the warehouse tables.
package main

import "dwhload/cmd"

func main() {
	cmd.ExecuteCreateTables()
}
