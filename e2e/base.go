// Package e2e drives running chat nodes end to end.
// Suites are skipped unless NODE_A_URL, NODE_B_URL and JWT_SECRET are set.
package e2e

import (
	"chat-relay/auth"
	"chat-relay/client"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const stepTimeout = 10 * time.Second

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if !s.Config.Enabled() {
		s.T().Skip("NODE_A_URL, NODE_B_URL and JWT_SECRET are required for e2e suites")
	}
}

func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// NewIdentity returns a unique e-mail so that reruns never share rooms.
func (s *BaseSuite) NewIdentity(name string) string {
	return fmt.Sprintf("%s-%s@e2e.test", name, uuid.NewString()[:8])
}

// ClientOn returns a client of node url authenticated as identity.
func (s *BaseSuite) ClientOn(url, identity, name string) *client.Client {
	token, err := auth.GenerateToken([]byte(s.Config.JWTSecret), identity, name, nil, time.Hour)
	s.Require().NoError(err)
	return client.New(url, token)
}

func (s *BaseSuite) Connect(c *client.Client) *client.Stream {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	stream, err := c.Connect(ctx)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = stream.Close() })
	return stream
}

// WithHealth provides a health client of node A, skipping when no address is configured.
func (s *BaseSuite) WithHealth(fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.NodeAGrpc == "" {
		s.T().Skip("NODE_A_GRPC not set")
	}
	conn, err := grpc.NewClient(s.Config.NodeAGrpc, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.NodeAGrpc)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
