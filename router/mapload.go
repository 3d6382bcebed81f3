package router

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MapData is the parsed building topology before graph construction.
type MapData struct {
	Nodes     []NodeRecord
	Edges     []EdgeRecord
	ExitAreas []int32
}

type NodeRecord struct {
	ID     int32   `bson:"id"`
	AreaID int32   `bson:"area"`
	X      float64 `bson:"x"`
	Y      float64 `bson:"y"`
}

type EdgeRecord struct {
	ID       int32   `bson:"id"`
	Start    int32   `bson:"start"`
	End      int32   `bson:"end"`
	Distance float64 `bson:"distance"`
}

const (
	sectionNodes = "NODES"
	sectionEdges = "EDGES"
	sectionExits = "EXITS"
)

// ParseMapData reads the text map format: a NODES header followed by
// "node_id area_id x y" lines, an EDGES header followed by
// "edge_id start end distance" lines, and an optional EXITS header followed
// by exit area id lines. Any malformed line or missing section is fatal to
// the load; no partial map is returned.
func ParseMapData(r io.Reader) (*MapData, error) {
	scanner := bufio.NewScanner(r)
	data := &MapData{}
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case sectionNodes, sectionEdges, sectionExits:
			if section == "" && line != sectionNodes {
				return nil, fmt.Errorf("line %d: missing %s header", lineNo, sectionNodes)
			}
			section = line
			continue
		}
		fields := strings.Fields(line)
		switch section {
		case sectionNodes:
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: node line needs 4 fields, got %d", lineNo, len(fields))
			}
			id, err1 := parseID(fields[0])
			area, err2 := parseID(fields[1])
			x, err3 := strconv.ParseFloat(fields[2], 64)
			y, err4 := strconv.ParseFloat(fields[3], 64)
			if err := firstErr(err1, err2, err3, err4); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.Nodes = append(data.Nodes, NodeRecord{ID: id, AreaID: area, X: x, Y: y})
		case sectionEdges:
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: edge line needs 4 fields, got %d", lineNo, len(fields))
			}
			id, err1 := parseID(fields[0])
			start, err2 := parseID(fields[1])
			end, err3 := parseID(fields[2])
			distance, err4 := strconv.ParseFloat(fields[3], 64)
			if err := firstErr(err1, err2, err3, err4); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.Edges = append(data.Edges, EdgeRecord{ID: id, Start: start, End: end, Distance: distance})
		case sectionExits:
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: exit line needs 1 field, got %d", lineNo, len(fields))
			}
			area, err := parseID(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data.ExitAreas = append(data.ExitAreas, area)
		default:
			return nil, fmt.Errorf("line %d: data before %s header", lineNo, sectionNodes)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if section == "" {
		return nil, fmt.Errorf("missing %s header", sectionNodes)
	}
	if section == sectionNodes {
		return nil, fmt.Errorf("missing %s header", sectionEdges)
	}
	return data, nil
}

func parseID(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadMapFile parses a map from a file on disk.
func LoadMapFile(path string) (*MapData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()
	data, err := ParseMapData(f)
	if err != nil {
		return nil, fmt.Errorf("parse map file %s: %w", path, err)
	}
	return data, nil
}

// mongo document layouts, one collection with a kind discriminator
type mongoMapDoc struct {
	Kind string     `bson:"kind"`
	Node NodeRecord `bson:",inline"`
	// edge fields share the inline id
	Start    int32   `bson:"start"`
	End      int32   `bson:"end"`
	Distance float64 `bson:"distance"`
}

// LoadMapFromMongo reads node/edge/exit documents from one collection, in
// natural order so first-match area resolution matches the stored order.
func LoadMapFromMongo(ctx context.Context, coll *mongo.Collection) (*MapData, error) {
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("query map collection: %w", err)
	}
	defer cursor.Close(ctx)
	data := &MapData{}
	for cursor.Next(ctx) {
		var doc mongoMapDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode map document: %w", err)
		}
		switch doc.Kind {
		case "node":
			data.Nodes = append(data.Nodes, doc.Node)
		case "edge":
			data.Edges = append(data.Edges, EdgeRecord{
				ID: doc.Node.ID, Start: doc.Start, End: doc.End, Distance: doc.Distance,
			})
		case "exit":
			data.ExitAreas = append(data.ExitAreas, doc.Node.AreaID)
		default:
			return nil, fmt.Errorf("map document with unknown kind %q", doc.Kind)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadMap builds the graph store from parsed map data. Any rejected insert
// aborts the load; the caller must discard the router so no partial graph
// is retained.
func (r *Router) LoadMap(data *MapData) error {
	for _, n := range data.Nodes {
		if err := r.AddNode(n.ID, n.AreaID, n.X, n.Y); err != nil {
			return err
		}
	}
	for _, e := range data.Edges {
		if err := r.AddEdge(e.ID, e.Start, e.End, e.Distance); err != nil {
			return err
		}
	}
	if err := r.SetExitAreas(data.ExitAreas); err != nil {
		return err
	}
	log.Infof("map loaded: %d nodes, %d edges, %d exit areas",
		r.NodeCount(), r.EdgeCount(), len(r.exitAreas))
	return nil
}
