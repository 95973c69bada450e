package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/awminer/chain"
	"github.com/yourusername/awminer/miner"
	"github.com/yourusername/awminer/proc"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	gin.SetMode(gin.ReleaseMode)

	elog := miner.NewEventLog(miner.DefaultLogCapacity, log)

	accounts, err := miner.LoadAccounts(cfg.Accounts.Env, cfg.Accounts.File, elog)
	if err != nil {
		log.WithError(err).Fatal("load accounts")
	}

	solverCmd := cfg.Solver.Command
	if len(solverCmd) == 0 {
		if solverCmd, err = proc.DetectSolverCommand(); err != nil {
			log.WithError(err).Fatal("proof-of-work helper unavailable")
		}
	}
	solver, err := proc.NewSolver(solverCmd)
	if err != nil {
		log.WithError(err).Fatal("proof-of-work helper unavailable")
	}

	signerCmd := cfg.Signer.Command
	if len(signerCmd) == 0 {
		if signerCmd, err = proc.DetectSignerCommand(); err != nil {
			log.WithError(err).Fatal("signing helper unavailable")
		}
	}
	signer, err := proc.NewSigner(signerCmd)
	if err != nil {
		log.WithError(err).Fatal("signing helper unavailable")
	}

	pool := chain.NewEndpointPool(cfg.RPC.Endpoints, log)
	client := chain.NewClient(pool, cfg.Mining.Contract, cfg.Mining.DefaultLand)

	payer := accounts[0]
	builder := chain.NewTxBuilder(pool, cfg.Mining.Contract, payer.Name, payer.Key, log)

	orch := miner.NewOrchestrator(accounts, miner.WorkerDeps{
		Records: client,
		Gate:    miner.NewComputeGate(cfg.Mining.Concurrency),
		Compute: solver,
		Signer:  signer,
		Builder: builder,
		Log:     elog,
	})

	router := newRouter(orch)
	go func() {
		log.WithField("listen", cfg.Listen).Info("starting mine scheduler")
		if err := router.Run(cfg.Listen); err != nil {
			log.WithError(err).Fatal("http server")
		}
	}()

	if cfg.AutoStart {
		go func() {
			time.Sleep(3 * time.Second)
			elog.Add(miner.SystemAccount, "Auto-starting miners", miner.LevelSuccess)
			if err := orch.StartAll(); err != nil {
				log.WithError(err).Error("auto-start")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	orch.StopAll()
}
