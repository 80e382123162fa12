// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jllopis/prefvec/pkg/feature"
)

const (
	qdrantPayloadUserID   = "user_id"
	qdrantPayloadEvidence = "evidence"
	qdrantScrollPageSize  = 256
)

// Qdrant stores profiles as points in a qdrant collection: the weight
// vector as the point vector, the original user_id and the serialized
// evidence log in the payload. Point ids are the internal UUID keys.
type Qdrant struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrant connects to a qdrant grpc endpoint and ensures the profile
// collection exists with the engine's fixed dimension count and cosine
// distance.
func NewQdrant(ctx context.Context, addr, collection string) (*Qdrant, error) {
	conn, err := grpc.Dial(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, Unavailable("qdrant connect", err)
	}
	q := &Qdrant{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}
	if err := q.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) ensureCollection(ctx context.Context) error {
	resp, err := q.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return Unavailable("qdrant list collections", err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == q.collection {
			return nil
		}
	}
	_, err = q.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(feature.Count()),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return Unavailable("qdrant create collection", err)
	}
	return nil
}

func (q *Qdrant) Name() string { return "qdrant" }

func (q *Qdrant) Get(ctx context.Context, key string) (*Record, error) {
	resp, err := q.points.Get(ctx, &pb.GetPoints{
		CollectionName: q.collection,
		Ids:            []*pb.PointId{pointID(key)},
		WithPayload:    withPayload(),
		WithVectors:    withVectors(),
	})
	if err != nil {
		return nil, Unavailable("qdrant get", err)
	}
	if len(resp.GetResult()) == 0 {
		return nil, ErrNotFound
	}
	return recordFromPoint(resp.GetResult()[0])
}

func (q *Qdrant) Upsert(ctx context.Context, key string, rec *Record) error {
	evidence, err := encodeEvidence(rec.Evidence)
	if err != nil {
		return Unavailable("qdrant encode", err)
	}
	point := &pb.PointStruct{
		Id: pointID(key),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: toFloat32(rec.Vector)},
			},
		},
		Payload: map[string]*pb.Value{
			qdrantPayloadUserID:   stringValue(rec.UserID),
			qdrantPayloadEvidence: stringValue(evidence),
		},
	}
	_, err = q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return Unavailable("qdrant upsert", err)
	}
	return nil
}

func (q *Qdrant) List(ctx context.Context) (map[string]*Record, error) {
	out := make(map[string]*Record)
	var offset *pb.PointId
	limit := uint32(qdrantScrollPageSize)
	for {
		resp, err := q.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: q.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    withPayload(),
			WithVectors:    withVectors(),
		})
		if err != nil {
			return nil, Unavailable("qdrant scroll", err)
		}
		for _, p := range resp.GetResult() {
			rec, err := recordFromPoint(p)
			if err != nil {
				return nil, err
			}
			out[p.GetId().GetUuid()] = rec
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return out, nil
		}
	}
}

func (q *Qdrant) Close() error {
	return q.conn.Close()
}

func recordFromPoint(p *pb.RetrievedPoint) (*Record, error) {
	rec := &Record{
		UserID: p.GetPayload()[qdrantPayloadUserID].GetStringValue(),
		Vector: toFloat64(p.GetVectors().GetVector().GetData()),
	}
	raw := p.GetPayload()[qdrantPayloadEvidence].GetStringValue()
	if raw != "" {
		evidence, err := decodeEvidence(raw)
		if err != nil {
			return nil, Unavailable("qdrant decode", err)
		}
		rec.Evidence = evidence
	}
	return rec, nil
}

func pointID(key string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: key}}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func withPayload() *pb.WithPayloadSelector {
	return &pb.WithPayloadSelector{
		SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
	}
}

func withVectors() *pb.WithVectorsSelector {
	return &pb.WithVectorsSelector{
		SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
