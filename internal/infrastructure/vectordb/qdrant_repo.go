package vectordb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leon37/KindKeeper/internal/repository"
	pb "github.com/qdrant/go-client/qdrant"
)

type QdrantRepository struct {
	points     pb.PointsClient
	collection string
}

// NewQdrantRepository 构造函数
func NewQdrantRepository(client *QdrantClient) repository.MemoryRepo {
	return &QdrantRepository{points: client.points, collection: client.collection}
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

// SaveMemory entry id 是 UUID，直接作为 point id，重复写入即覆盖
func (r *QdrantRepository) SaveMemory(ctx context.Context, userID, entryID, content, category string, createdAt time.Time, vector []float32) error {
	points := []*pb.PointStruct{
		{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: entryID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vector},
				},
			},
			Payload: map[string]*pb.Value{
				"user_id":   stringValue(userID),
				"entry_id":  stringValue(entryID),
				"content":   stringValue(content),
				"category":  stringValue(category),
				"timestamp": {Kind: &pb.Value_IntegerValue{IntegerValue: createdAt.Unix()}},
			},
		},
	}

	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		slog.Error("qdrant upsert failed", "entry_id", entryID, "err", err)
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	slog.Debug("saved memory to qdrant", "entry_id", entryID)
	return nil
}

func (r *QdrantRepository) SearchSimilar(ctx context.Context, userID string, limit int, queryVector []float32) ([]repository.MemoryResult, error) {
	filter := &pb.Filter{
		Must: []*pb.Condition{{
			ConditionOneOf: &pb.Condition_Field{
				Field: &pb.FieldCondition{
					Key: "user_id",
					Match: &pb.Match{
						MatchValue: &pb.Match_Keyword{Keyword: userID},
					},
				},
			},
		}},
	}

	searchResult, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         queryVector,
		Limit:          uint64(limit),
		Filter:         filter,
		// 不开 payload 只返回 id 和 score
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		slog.Error("qdrant search failed", "err", err)
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	results := make([]repository.MemoryResult, 0, len(searchResult.GetResult()))
	for _, point := range searchResult.GetResult() {
		payload := point.GetPayload()
		results = append(results, repository.MemoryResult{
			EntryID:   payload["entry_id"].GetStringValue(),
			Content:   payload["content"].GetStringValue(),
			Category:  payload["category"].GetStringValue(),
			Score:     point.GetScore(),
			CreatedAt: time.Unix(payload["timestamp"].GetIntegerValue(), 0),
		})
	}
	return results, nil
}
