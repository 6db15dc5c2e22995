package vectordb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leon37/KindKeeper/internal/config"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type QdrantClient struct {
	conn       *grpc.ClientConn
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	vectorSize uint64
}

// NewQdrantClient 初始化连接 (gRPC，连接在首次调用时建立)
func NewQdrantClient(cfg config.QdrantConfig) (*QdrantClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("did not connect to qdrant: %w", err)
	}

	return &QdrantClient{
		conn:       conn,
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.CollectionName,
		vectorSize: cfg.VectorSize,
	}, nil
}

// Close 关闭连接
func (q *QdrantClient) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// InitCollection 确保向量集合存在，并为 user_id 建 keyword 索引
func (q *QdrantClient) InitCollection(ctx context.Context) error {
	exists, err := q.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: q.collection,
	})
	if err == nil && exists != nil {
		slog.Info("qdrant collection already exists", "collection", q.collection)
		return nil
	}

	slog.Info("creating qdrant collection", "collection", q.collection, "dim", q.vectorSize)
	_, err = q.client.Create(ctx, &pb.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     q.vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	wait := true
	fieldType := pb.FieldType_FieldTypeKeyword
	_, err = q.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: q.collection,
		Wait:           &wait,
		FieldName:      "user_id",
		FieldType:      &fieldType,
	})
	if err != nil {
		return fmt.Errorf("failed to index user_id: %w", err)
	}
	return nil
}
