package queue

import (
	"fmt"
	"strings"

	"github.com/soltixdb/lagforest/internal/config"
	"github.com/soltixdb/lagforest/internal/utils"
)

// openers maps each transport to its constructor
var openers = map[utils.QueueType]func(cfg config.QueueConfig) (Queue, error){
	utils.QueueTypeNATS: func(cfg config.QueueConfig) (Queue, error) {
		return newNATSQueue(NATSConfig{URL: cfg.URL, Username: cfg.Username, Password: cfg.Password})
	},
	utils.QueueTypeRedis: func(cfg config.QueueConfig) (Queue, error) {
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
			Consumer: cfg.RedisConsumer,
		})
	},
	utils.QueueTypeKafka: func(cfg config.QueueConfig) (Queue, error) {
		return newKafkaQueue(KafkaConfig{Brokers: cfg.KafkaBrokers, GroupID: cfg.KafkaGroupID})
	},
	utils.QueueTypeMemory: func(config.QueueConfig) (Queue, error) {
		return newMemoryQueue(), nil
	},
}

// NewQueue opens the transport named by cfg.Type (case-insensitive). An
// empty type selects the in-memory queue, which only connects publishers
// and subscribers of the same process.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	queueType := utils.QueueType(strings.ToLower(cfg.Type))
	if queueType == "" {
		queueType = utils.QueueTypeMemory
	}

	open, ok := openers[queueType]
	if !ok {
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, kafka, memory)", queueType)
	}
	q, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s queue: %w", queueType, err)
	}
	return q, nil
}

// NewPublisher opens a queue for the trainer side
func NewPublisher(cfg config.QueueConfig) (Publisher, error) {
	return NewQueue(cfg)
}

// NewSubscriber opens a queue for the serving side
func NewSubscriber(cfg config.QueueConfig) (Subscriber, error) {
	return NewQueue(cfg)
}
