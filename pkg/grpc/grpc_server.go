package grpc

import (
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"liyu1981.xyz/iot-datalogger/pkg/iot"
)

type IOTServer struct {
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
}

var _ DashboardServiceServer = (*IOTServer)(nil)

func (i *IOTServer) GetLimiter(clientKey string) *rate.Limiter {
	if i.RateLimiterStore == nil {
		return nil
	} else {
		return i.RateLimiterStore.GetLimiter(clientKey)
	}
}

func (i *IOTServer) CheckClientLimiter(clientKey string) bool {
	limiter := i.GetLimiter(clientKey)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

// NewServer builds a grpc.Server with the dashboard service registered and rate limiting applied
// to the read methods.
func (i *IOTServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	interceptor := grpc.UnaryInterceptor(i.CreateRateLimitInterceptor([]string{
		MethodListDevices,
		MethodListAlarms,
		MethodGetHistory,
	}))
	server := grpc.NewServer(append([]grpc.ServerOption{interceptor}, opts...)...)
	RegisterDashboardServiceServer(server, i)
	return server
}
