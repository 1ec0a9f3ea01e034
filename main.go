package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"MERIT-backend/internal/attendance"
	"MERIT-backend/internal/events"
	"MERIT-backend/internal/platform/auth"
	"MERIT-backend/internal/platform/cache"
	"MERIT-backend/internal/platform/db"
)

func main() {
	// .env は任意（config パス等の上書き用）
	_ = godotenv.Load()

	cfg, err := db.LoadConfig(os.Getenv("MERIT_CONFIG"))
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	if err := db.Migrate(conn); err != nil {
		panic(err)
	}

	// Redis は任意。URL未設定なら nil（キャッシュ無効）のまま動く。
	eventCache, err := cache.New(cfg.Redis.URL, "merit:", time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	if err != nil {
		panic(err)
	}
	defer eventCache.Close()
	if eventCache != nil {
		log.Printf("[INFO] event cache enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.JWTSecret)

	// 認証外（トークン取得用）
	auth.RegisterRoutes(r.Group("/api/v1/auth"), auth.NewService(conn, secret))

	// /api/v1 は要認証
	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(secret))
	events.RegisterRoutes(api, events.NewService(conn, eventCache))
	attendance.RegisterRoutes(api, attendance.NewService(conn))

	// 2面持ちテーブルの突き合わせジョブ
	reconciler := attendance.NewReconciler(conn)
	if err := reconciler.Start(cfg.Reconcile.Schedule); err != nil {
		panic(err)
	}
	defer reconciler.Stop()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	var certFile, keyFile string

	// TLS設定
	if mode == "dev" {
		//開発用
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		//本番用
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
