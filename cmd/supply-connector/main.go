package main

import (
	"github.com/sellerops/ozon-supply-connector/cmd/supply-connector/app"
)

func main() {
	app.New().Run()
}
