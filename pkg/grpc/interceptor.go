package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
)

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	return iot.ClientKey(p.Addr.String())
}

func (i *IOTServer) CreateRateLimitInterceptor(targetMethods []string) grpc.UnaryServerInterceptor {
	targetMethodMap := common.Reducer(targetMethods,
		func(m map[string]bool, method string) map[string]bool {
			m[method] = true
			return m
		},
		map[string]bool{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := targetMethodMap[info.FullMethod]; ok {
			clientKey := peerKey(ctx)
			if !i.CheckClientLimiter(clientKey) {
				common.GetLoggerWith(common.LoggerNameGrpcServer).Debug("Rate limited",
					zap.String("method", info.FullMethod),
					zap.String("client", clientKey),
				)
				return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
			}
		}

		return handler(ctx, req)
	}
}
