package main

import (
	"log"

	"github.com/lazy-lotto/backend/internal/mirror"
	"github.com/urfave/cli/v2"
)

func (s *srv) loadMirror() {
	s.mirrorReader = mirror.NewReader(s.redisClient)
	s.refresher = mirror.NewRefresher(
		s.poolRepo, s.ledgerRepo, s.redisClient, s.configs.Lotto.MirrorLag)
}

func (s *srv) startMirror(ct *cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadBaseContext()
	s.loadRepos()
	s.loadMirror()

	log.Printf("Starting mirror refresher with lag %s\n", s.configs.Lotto.MirrorLag)
	s.refresher.Run(s.ctx)
	return nil
}
