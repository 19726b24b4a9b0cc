package main

import (
	"context"
	"fmt"
	"os"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/ctl"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	if err := ctl.NewRootCmd(cfg, ctl.OpenApp).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
