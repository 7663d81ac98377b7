package grpcapi

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/sergiohdezchi/order-processing-service/internal/domain"
	"github.com/sergiohdezchi/order-processing-service/internal/intake"
)

const serviceName = "order.v1.OrderIntake"

// OrderItem mirrors domain.OrderItem on the wire.
type OrderItem struct {
	ItemID      string  `json:"item_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type CreateOrderRequest struct {
	OrderID             string      `json:"order_id"`
	CustomerID          string      `json:"customer_id"`
	CustomerPhoneNumber string      `json:"customer_phone_number"`
	Items               []OrderItem `json:"items"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OrderIntakeServer is the service contract behind the hand-assembled
// service descriptor.
type OrderIntakeServer interface {
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)
}

// Server exposes order intake over gRPC. Each CreateOrder call blocks until
// the dispatcher resolves its completion, so the caller always gets the one
// terminal response.
type Server struct {
	dispatcher *intake.Dispatcher
	logger     *zap.Logger
	grpc       *grpc.Server
}

func NewServer(dispatcher *intake.Dispatcher, logger *zap.Logger) *Server {
	s := &Server{
		dispatcher: dispatcher,
		logger:     logger,
		grpc:       grpc.NewServer(grpc.ForceServerCodec(jsonCodec{})),
	}
	s.grpc.RegisterService(&serviceDesc, s)
	return s
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

func (s *Server) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ItemID:      item.ItemID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	completion := s.dispatcher.CreateOrder(req.OrderID, req.CustomerID, req.CustomerPhoneNumber, items)

	select {
	case resp := <-completion.Done():
		return &CreateOrderResponse{
			OrderID: resp.OrderID,
			Status:  resp.Status,
			Message: resp.Message,
		}, nil
	case <-ctx.Done():
		s.logger.Warn("create order call abandoned by caller",
			zap.String("order_id", req.OrderID),
			zap.Error(ctx.Err()),
		)
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderIntakeServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				var in CreateOrderRequest
				if err := dec(&in); err != nil {
					return nil, err
				}
				return srv.(OrderIntakeServer).CreateOrder(ctx, &in)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "order/v1/order_intake",
}
