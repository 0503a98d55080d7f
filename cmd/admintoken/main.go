package main

import (
	"flag"
	"fmt"
	"os"
	"time"
	"topup_store/internal/pkg/config"
	"topup_store/pkg/utils"
)

// 签发管理员 JWT，用于调用 /admin 接口
func main() {
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := config.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	token, expireAt, err := utils.GenerateToken(*subject, utils.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n# expires at %s\n", token, expireAt.Format(time.RFC3339))
}
