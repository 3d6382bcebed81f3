package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evacsys/evacroute/router"
)

// MapSource is where the building map comes from: a file on disk or a mongo
// collection given as {db}.{col}.
type MapSource struct {
	File string
	DB   string
	Coll string
}

func NewMapSource(filePathOrColl string) (*MapSource, error) {
	// 检查filePathOrColl是否作为文件存在
	if _, err := os.Stat(filePathOrColl); err == nil {
		return &MapSource{File: filePathOrColl}, nil
	}
	dbDotColl := strings.TrimSpace(filePathOrColl)
	if dbDotColl == "" {
		return nil, fmt.Errorf("empty map source")
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 {
		return nil, fmt.Errorf("map source is neither a file nor {db}.{col}: %s", dbDotColl)
	}
	return &MapSource{DB: splitted[0], Coll: splitted[1]}, nil
}

func (s *MapSource) String() string {
	if s.File != "" {
		return s.File
	}
	return s.DB + "." + s.Coll
}

// Load fetches and parses the map data. mongoURI is only needed for
// {db}.{col} sources.
func (s *MapSource) Load(ctx context.Context, mongoURI string) (*router.MapData, error) {
	if s.File != "" {
		return router.LoadMapFile(s.File)
	}
	if mongoURI == "" {
		return nil, fmt.Errorf("map source %s needs -mongo_uri", s)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	return router.LoadMapFromMongo(ctx, client.Database(s.DB).Collection(s.Coll))
}
