package ingest_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mkrogh/homewatch/internal/ingest"
	"github.com/mkrogh/homewatch/pkg/metrics"
	"github.com/mkrogh/homewatch/pkg/mq/mock"
)

// Registered once for the whole package to keep the global registry happy.
var consumerMQMetrics = metrics.NewMQMetrics("homewatch_ingest_test")

// fakeAcknowledger records acks and nacks for delivered messages.
type fakeAcknowledger struct {
	mu     sync.Mutex
	acks   int
	nacks  int
	rejets int
}

func (a *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejets++
	return nil
}

func (a *fakeAcknowledger) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.acks, a.nacks
}

var _ = Describe("Consumer", func() {
	var (
		f      *fixture
		client *mock.Client
		acker  *fakeAcknowledger
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		f = newFixture()
		client = mock.NewClient()
		acker = &fakeAcknowledger{}

		consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
			Logger:  testLogger(),
			Service: f.service,
			Client:  client,
		})
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		Expect(consumer.Start(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
	})

	Describe("NewConsumer", func() {
		It("should return error when config is nil", func() {
			c, err := ingest.NewConsumer(nil)
			Expect(err).To(HaveOccurred())
			Expect(c).To(BeNil())
		})

		It("should attach MQ metrics to the client when configured", func() {
			mc := mock.NewClient()
			c, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    testLogger(),
				Service:   f.service,
				Client:    mc,
				MQMetrics: consumerMQMetrics,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).NotTo(BeNil())
			Expect(mc.Metrics()).To(Equal(consumerMQMetrics))
		})

		It("should require connection details without an injected client", func() {
			c, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:  testLogger(),
				Service: f.service,
			})
			Expect(err).To(HaveOccurred())
			Expect(c).To(BeNil())
		})
	})

	Context("with a valid environment report", func() {
		It("should persist the reading and ack the delivery", func() {
			client.Deliveries <- amqp.Delivery{
				Acknowledger: acker,
				Body:         []byte(`{"temperature": 21.5, "humidity": 45.0, "timestamp": "2026-08-29 10:00:00"}`),
			}

			Eventually(func() int64 {
				count, _ := f.readings.Count(context.Background())
				return count
			}).Should(Equal(int64(1)))

			Eventually(func() int {
				acks, _ := acker.counts()
				return acks
			}).Should(Equal(1))
		})
	})

	Context("with a malformed payload", func() {
		It("should ack without storing anything", func() {
			client.Deliveries <- amqp.Delivery{
				Acknowledger: acker,
				Body:         []byte(`{not json`),
			}

			Eventually(func() int {
				acks, _ := acker.counts()
				return acks
			}).Should(Equal(1))

			count, err := f.readings.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Context("with an out-of-range report", func() {
		It("should ack without storing anything", func() {
			client.Deliveries <- amqp.Delivery{
				Acknowledger: acker,
				Body:         []byte(`{"temperature": 500, "humidity": 45.0, "timestamp": "2026-08-29 10:00:00"}`),
			}

			Eventually(func() int {
				acks, _ := acker.counts()
				return acks
			}).Should(Equal(1))

			count, err := f.readings.Count(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})
})
