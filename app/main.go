package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/rbhz/mw-vocabulary/app/api"
	"github.com/rbhz/mw-vocabulary/app/bot"
	"github.com/rbhz/mw-vocabulary/app/clients/merriamwebster"
	"github.com/rbhz/mw-vocabulary/app/db"
	"github.com/rbhz/mw-vocabulary/app/lookup"
	"github.com/rbhz/mw-vocabulary/app/vocab"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	log "github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

type Opts struct {
	BotToken    string `long:"bot-token" env:"BOT_TOKEN" required:"true" description:"Telegram bot token"`
	BoltDB      string `long:"boltdb" env:"BOLTDB" default:"./vocabulary.data" description:"Path to BoltDB"`
	RedisURL    string `long:"redis" env:"REDIS_URL" description:"Redis database URL"`
	MWKey       string `long:"mw-key" env:"MW_API_KEY" required:"true" description:"Merriam-Webster API key"`
	MWReference string `long:"mw-ref" env:"MW_REFERENCE" default:"collegiate" description:"Merriam-Webster dictionary reference"`
	JWTSecret   string `long:"jwt" env:"JWT_SECRET" required:"true" description:"JWT secret"`
	Port        int    `long:"port" env:"PORT" default:"8080" description:"Port to listen on"`
	Stem        bool   `long:"stem" env:"STEM" description:"Look up stems of the words first"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func main() {
	var opts Opts
	_, err := flags.ParseArgs(&opts, os.Args)
	if err != nil {
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	storage, closeStorage := getStorage(opts)
	defer closeStorage()

	client := merriamwebster.NewClient(opts.MWKey, opts.MWReference)
	var stemmer lookup.Stemmer
	if opts.Stem {
		stemmer = lookup.SnowballStemmer{}
	}
	dictionary := lookup.NewService(storage, client, stemmer)
	tracker := vocab.NewTracker(storage)

	// Start API
	go func() {
		api := api.NewServer(storage, dictionary, tracker, opts.BotToken, opts.JWTSecret)
		if err := api.Run(opts.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to run API server")
		}
	}()

	// initialize Telegram bot
	b, err := bot.NewTelegramBot(opts.BotToken, storage, bot.NewHandlers(bot.Deps{
		Lookup:   dictionary,
		Audio:    client,
		Tracker:  tracker,
		Sessions: bot.NewSessions(),
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	b.Start()
}

func getStorage(opts Opts) (db.Storage, func()) {
	if opts.RedisURL != "" {
		redisStorage, err := db.NewRedisStorage(opts.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create redis client")
		}
		return redisStorage, func() {}
	}
	boltDB, err := bolt.Open(opts.BoltDB, 0600, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create boltDB database")
	}
	boltStorage, err := db.NewBoltStorage(boltDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bolt storage")
	}
	return boltStorage, func() {
		err := boltDB.Close()
		if err != nil {
			log.Error().Err(err).Msg("failed to close boltDB database")
		}
	}
}
