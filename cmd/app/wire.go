//go:build wireinject
// +build wireinject

package main

import (
	"net/http"

	"github.com/google/wire"
	"github.com/pdcgo/collection_service"
	"github.com/pdcgo/collection_service/bootstrap"
	"github.com/pdcgo/collection_service/config"
)

func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		http.NewServeMux,
		bootstrap.AgentSet,
		collection_service.NewRegister,
		NewApp,
	)

	return &App{}, nil, nil
}
