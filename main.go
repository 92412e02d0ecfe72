package main

import (
	"context"
	"os/signal"
	"syscall"

	dataentryx "github.com/kingswood/clienthub/agent/agents/dataentry"
	knowitallx "github.com/kingswood/clienthub/agent/agents/knowitall"
	llmx "github.com/kingswood/clienthub/agent/llm"
	promptx "github.com/kingswood/clienthub/agent/prompt"
	routerx "github.com/kingswood/clienthub/agent/router"
	transcriptx "github.com/kingswood/clienthub/agent/transcript"
	authx "github.com/kingswood/clienthub/pkg/auth"
	configx "github.com/kingswood/clienthub/pkg/config"
	crmx "github.com/kingswood/clienthub/pkg/crm"
	logx "github.com/kingswood/clienthub/pkg/logger"
	_ "github.com/kingswood/clienthub/pkg/logger/autoload"
	projectsysx "github.com/kingswood/clienthub/pkg/projectsys"
	serverx "github.com/kingswood/clienthub/server"
)

func main() {
	log := logx.Component("main")

	crmCfg := configx.MustNew[crmx.Config]("CRM")
	crmClient, err := crmx.NewClient(*crmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("crm client init failed")
	}

	projectCfg := configx.MustNew[projectsysx.Config]("PROJECT_SYSTEM")
	projectClient, err := projectsysx.NewClient(*projectCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("project-system client init failed")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	model, err := llmx.NewClient(*llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("llm client init failed")
	}

	authCfg := configx.MustNew[authx.Config]("AUTH")
	authService, err := authx.NewService(*authCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("auth service init failed")
	}

	prompts := promptx.LoadPromptSet()
	// Registration order matters: the first agent is the routing default.
	rt, err := routerx.New(model,
		knowitallx.New(crmClient, projectClient, prompts.KnowItAll),
		dataentryx.New(projectClient, prompts.DataEntry),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("router init failed")
	}

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := serverx.New(*serverCfg, authService, rt, transcriptx.NewIngester(crmClient), crmClient, projectClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
