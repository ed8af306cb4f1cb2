// Command etl loads the staging tables from S3 and populates the star schema.
package main

import "dwhload/cmd"

func main() {
	cmd.ExecuteETL()
}
