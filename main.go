package main

import (
	"errors"
	"fmt"
	"os"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"pressroom/handler"
	"pressroom/service"
	"pressroom/store"
)

const DEV_ENV = "dev"
const PRO_ENV = "pro"

func main() {
	env := os.Getenv("ENV")
	if env == "" {
		env = PRO_ENV
	}

	fmt.Println("Running database schema migrations...")
	st, err := setupStore()
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	jwtSecret, err := fetchSecret(env)
	if err != nil {
		panic(err)
	}

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "header:Authorization:Bearer ,cookie:auth_token",
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/health", "/auth/login", "/auth/signup":
				return true
			}
			return false
		},
	}))

	h := handler.Handler{
		Service:      service.New(st),
		Store:        st,
		JWTSecret:    jwtSecret,
		EnableSignup: os.Getenv("ENABLE_SIGNUP") == "true",
		Environment:  env,
	}

	e.GET("/health", h.Health)

	e.POST("/auth/login", h.Login)
	e.POST("/auth/signup", h.Signup)
	e.POST("/auth/logout", h.Logout)
	e.GET("/auth/me", h.Me)

	e.POST("/posts", h.CreatePost)
	e.GET("/posts", h.GetPosts)
	e.GET("/posts/:id", h.GetPost)
	e.PUT("/posts/:id", h.UpdatePost)
	e.PATCH("/posts/:id/publish", h.PublishPost)
	e.DELETE("/posts/:id", h.DeletePost)
	e.GET("/posts/:id/versions", h.GetPostVersions)

	e.POST("/spaces", h.CreateSpace)
	e.GET("/spaces", h.GetSpaces)
	e.POST("/spaces/:id/members", h.AddSpaceMember)

	e.GET("/users/profile", h.Profile)
	e.PATCH("/admin/users/:id/role", h.SetUserRole)
	e.PATCH("/admin/users/:id/active", h.SetUserActive)

	e.HTTPErrorHandler = handler.HTTPErrorHandler

	addr := os.Getenv("ADDRESS_LISTEN")
	if env == DEV_ENV && addr == "" {
		addr = ":8080"
	}

	if addr != "" {
		e.Logger.Fatal(e.Start(addr))
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache("/var/www/.cache")
		if onlyHost := os.Getenv("WHITELIST_HOST"); onlyHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(onlyHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		e.Logger.Fatal(e.StartAutoTLS(":443"))
	}
}

func fetchSecret(env string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && env == DEV_ENV {
		secret = "unsecure"
	}
	if secret == "" {
		return "", errors.New("no secret defined")
	}
	return secret, nil
}

func setupStore() (*store.Store, error) {
	// PostgresSQL support will come in the future
	dbDriver := os.Getenv("DB_DRIVER")
	if dbDriver == "" {
		dbDriver = "sqlite"
	}
	if dbDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", dbDriver)
	}

	dataSourceName := os.Getenv("DB_URL")
	if dataSourceName == "" {
		dataSourceName = "./pressroom.db?_pragma=foreign_keys(1)"
	}
	return store.Open(dataSourceName, "file://db/migrations")
}
