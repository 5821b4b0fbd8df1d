package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ActorMetadataKey は操作者の社員 ID を運ぶメタデータキーです。
const ActorMetadataKey = "x-actor-id"

func actorFromContext(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, ActorMetadataKey+" metadata is required")
	}
	for _, v := range md.Get(ActorMetadataKey) {
		if actor := strings.TrimSpace(v); actor != "" {
			return actor, nil
		}
	}
	return "", status.Error(codes.Unauthenticated, ActorMetadataKey+" metadata is required")
}
