package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/useradminclient/lib/myconfig"
	"github.com/MarcGrol/useradminclient/lib/mystore"
	"github.com/MarcGrol/useradminclient/lib/mytime"
	"github.com/MarcGrol/useradminclient/lib/myuuid"
	"github.com/MarcGrol/useradminclient/services/usersim"
)

func main() {
	c := context.Background()

	cfg, err := myconfig.Load()
	if err != nil {
		log.Fatalf("Error loading config: %s", err)
	}

	router := mux.NewRouter()

	userStore, userStoreCleanup, err := mystore.New[usersim.User](c)
	if err != nil {
		log.Fatalf("Error creating user store: %s", err)
	}
	defer userStoreCleanup()

	sessionStore, sessionStoreCleanup, err := usersim.NewSessionStore(c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	simService := usersim.NewService(userStore, sessionStore,
		[]byte(cfg.Sim.SigningSecret), cfg.Sim.AccessTokenTTL, cfg.Sim.RefreshTokenTTL,
		mytime.RealNower{}, myuuid.RealUUIDer{})
	simService.RegisterEndpoints(c, router)

	startWebServerBlocking(cfg.Server.Port, router)
}

func startWebServerBlocking(port string, router *mux.Router) {
	log.Printf("Starting user-identity simulator on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
