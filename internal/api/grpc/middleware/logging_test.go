package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcctx "github.com/argrp/rpbot/internal/api/grpc/context"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/testutil"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	lg := NewLogging(testutil.MakeNoopLogger(), grpcctx.NewManager())

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				time.Sleep(10 * time.Millisecond)
				return "ok", nil
			},
			wantCode: codes.OK,
		},
		{
			name: "grpc error propagates",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := grpcctx.NewManager().SetOperatorToContext(context.Background(), "vladimir")
			info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}
			resp, err := lg.HandleGRPC(ctx, struct{}{}, info, tt.handler)

			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
				return
			}

			assert.Equal(t, tt.wantCode, codeOf(err))
		})
	}
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func TestLogging_HandleStream(t *testing.T) {
	t.Parallel()

	lg := NewLogging(testutil.MakeNoopLogger(), grpcctx.NewManager())
	info := &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}
	ss := &fakeStream{ctx: context.Background()}

	called := false
	err := lg.HandleStream(nil, ss, info, func(srv interface{}, stream grpc.ServerStream) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	wantErr := status.Error(codes.Canceled, "client gone")
	err = lg.HandleStream(nil, ss, info, func(srv interface{}, stream grpc.ServerStream) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, codes.OK, codeOf(nil))
	assert.Equal(t, codes.NotFound, codeOf(status.Error(codes.NotFound, "x")))
	assert.Equal(t, codes.Internal, codeOf(errors.New("plain")))
}

func TestLogging_IgnoresOperatorHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := NewLogging(&logger.Logger{Logger: slog.New(slog.NewTextHandler(&buf, nil))}, grpcctx.NewManager())

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("operator", "spoofed"))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	_, err := lg.HandleGRPC(ctx, struct{}{}, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	assert.NoError(t, err)

	assert.Contains(t, buf.String(), "operator=anonymous")
	assert.NotContains(t, buf.String(), "spoofed")
}
