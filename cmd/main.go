package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"SamLoc/config"
	"SamLoc/internal/auth"
	"SamLoc/internal/directory"
	"SamLoc/internal/game/manager"
	"SamLoc/internal/middleware"
	"SamLoc/internal/storage"
	"SamLoc/internal/utils"
	"SamLoc/internal/websocket"
)

func main() {
	path := os.Getenv("SAMLOC_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	if err := config.Load(path); err != nil {
		utils.Log.Fatal("config load failed", "path", path, "err", err)
	}
	utils.Init(config.C.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 房间号目录：有 Redis 用 Redis，否则内存
	//-------------------------------------------------------
	repo := directory.NewMemoryRepo()
	if addr := config.C.Redis.Addr; addr != "" {
		rdb, err := storage.InitRedis(ctx, addr, config.C.Redis.Password, config.C.Redis.DB)
		if err != nil {
			utils.Log.Fatal("redis init failed", "err", err)
		}
		defer storage.CloseRedis()
		repo = directory.NewRedisRepo(rdb)
		utils.Log.Info("room directory on redis", "addr", addr)
	} else {
		utils.Log.Info("room directory in memory")
	}
	dir := directory.NewService(repo, config.C.Game.CodeTTL)

	//-------------------------------------------------------
	// 2. Hub + GameManager
	//-------------------------------------------------------
	hub := websocket.NewHub()
	gameMgr := manager.NewGameManager(hub, dir, manager.Settings{
		MaxPlayers:    config.C.Game.MaxPlayers,
		DeclareWindow: config.C.DeclareWindow(),
	})
	hub.OnIncoming = gameMgr.HandlePlayerMessage
	hub.OnDisconnect = gameMgr.HandleDisconnect
	go hub.Run()
	go gameMgr.RunTicker(ctx, config.C.Game.TickInterval)

	//-------------------------------------------------------
	// 3. Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Admin-Token"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(config.C.JWT.Secret, config.C.JWT.TTL)
	r.POST("/auth/guest", authHandler.Guest)

	dh := directory.NewHandler(dir)
	r.GET("/rooms", dh.List)
	r.GET("/rooms/:code", dh.Lookup)

	secret := []byte(config.C.JWT.Secret)
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	authed.GET("/ws", websocket.ServeWS(hub))

	if token := config.C.Server.AdminToken; token != "" {
		r.GET("/admin/rooms", middleware.AdminTokenMiddleware(token), func(c *gin.Context) {
			c.JSON(http.StatusOK, gameMgr.AdminView())
		})
	}

	//-------------------------------------------------------
	// 4. 启动服务器
	//-------------------------------------------------------
	srv := &http.Server{Addr: config.C.Server.Port, Handler: r}
	go func() {
		utils.Log.Info("server running", "addr", config.C.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	utils.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.Warn("shutdown incomplete", "err", err)
	}
	hub.Close()
}
