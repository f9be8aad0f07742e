// Package catalog remembers finished conversions. A run logs the previous
// conversion of its input before converting it again.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type Entry struct {
	RunID     string
	Input     string
	MidiPath  string
	XMLPath   string
	Parts     int
	Measures  int
	Chords    int
	Rests     int
	CreatedAt time.Time
}

type Catalog interface {
	Record(ctx context.Context, e Entry) error
	Lookup(ctx context.Context, input string) (*Entry, bool, error)
}

// Nop is used when no table is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Lookup(context.Context, string) (*Entry, bool, error) { return nil, false, nil }

// DynamoCatalog stores one item per input path, keyed by PK.
type DynamoCatalog struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewDynamo(client dynamodbiface.DynamoDBAPI, table string) *DynamoCatalog {
	return &DynamoCatalog{client: client, table: table}
}

// Open creates a DynamoDB backed catalog. endpoint may point at
// dynamodb-local; empty uses the regional AWS endpoint.
func Open(table, region, endpoint string) (*DynamoCatalog, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a DynamoDB session: %w", err)
	}
	return NewDynamo(dynamodb.New(sess), table), nil
}

func (c *DynamoCatalog) Record(ctx context.Context, e Entry) error {
	_, err := c.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      toItem(e),
	})
	if err != nil {
		return fmt.Errorf("catalog record %s: %w", e.Input, err)
	}
	return nil
}

func (c *DynamoCatalog) Lookup(ctx context.Context, input string) (*Entry, bool, error) {
	res, err := c.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(input)},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("catalog lookup %s: %w", input, err)
	}
	if len(res.Item) == 0 {
		return nil, false, nil
	}
	e := fromItem(res.Item)
	return &e, true, nil
}

func toItem(e Entry) map[string]*dynamodb.AttributeValue {
	num := func(n int) *dynamodb.AttributeValue {
		return &dynamodb.AttributeValue{N: aws.String(strconv.Itoa(n))}
	}
	str := func(s string) *dynamodb.AttributeValue {
		return &dynamodb.AttributeValue{S: aws.String(s)}
	}
	return map[string]*dynamodb.AttributeValue{
		"PK":        str(e.Input),
		"RunID":     str(e.RunID),
		"MidiPath":  str(e.MidiPath),
		"XMLPath":   str(e.XMLPath),
		"Parts":     num(e.Parts),
		"Measures":  num(e.Measures),
		"Chords":    num(e.Chords),
		"Rests":     num(e.Rests),
		"CreatedAt": str(e.CreatedAt.UTC().Format(time.RFC3339)),
	}
}

// fromItem tolerates missing attributes, items written by older versions
// may lack some of them.
func fromItem(item map[string]*dynamodb.AttributeValue) Entry {
	str := func(key string) string {
		if v, ok := item[key]; ok && v.S != nil {
			return *v.S
		}
		return ""
	}
	num := func(key string) int {
		if v, ok := item[key]; ok && v.N != nil {
			n, _ := strconv.Atoi(*v.N)
			return n
		}
		return 0
	}
	created, _ := time.Parse(time.RFC3339, str("CreatedAt"))
	return Entry{
		RunID:     str("RunID"),
		Input:     str("PK"),
		MidiPath:  str("MidiPath"),
		XMLPath:   str("XMLPath"),
		Parts:     num("Parts"),
		Measures:  num("Measures"),
		Chords:    num("Chords"),
		Rests:     num("Rests"),
		CreatedAt: created,
	}
}
