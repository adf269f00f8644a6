package cmd

import (
	"github.com/killallgit/realty/pkg/api"
	"github.com/killallgit/realty/pkg/chat"
	"github.com/killallgit/realty/pkg/config"
	"github.com/killallgit/realty/pkg/controllers"
	"github.com/killallgit/realty/pkg/presenter"
)

func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(api.FileTokenSource{
			Path:     cfg.TokenFilePath(),
			Fallback: cfg.Auth.Token,
		}),
	)
}

func newChatController(cfg *config.Config, client *api.Client) *controllers.ChatController {
	return controllers.NewChatController(client, chat.NewStore(),
		controllers.WithStreaming(cfg.API.Streaming),
		controllers.WithReadBuffer(cfg.API.ReadBuffer),
	)
}

func newRecordsController() *controllers.RecordsController {
	return controllers.NewRecordsController(newAPIClient(config.Get()))
}

func profilesFor(cfg *config.Config) *presenter.Profiles {
	return presenter.ProfilesFromConfig(cfg.Agents.Profiles)
}

func newPresenter(cfg *config.Config) *presenter.Presenter {
	return presenter.New(profilesFor(cfg), presenter.WithCodeStyle(cfg.UI.CodeStyle))
}
