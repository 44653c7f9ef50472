package main

import (
	"context"
	"errors"
	"log"
	"time"

	"walletv5/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
)

type OutboxJob struct {
	serviceOutbox *services.ServiceOutbox
	serviceConfig *services.ServiceConfig
}

func NewOutboxJob(container *do.Injector) (*OutboxJob, error) {
	serviceOutbox, err := do.Invoke[*services.ServiceOutbox](container)
	if err != nil {
		return nil, err
	}
	serviceConfig, err := do.Invoke[*services.ServiceConfig](container)
	if err != nil {
		return nil, err
	}
	return &OutboxJob{serviceOutbox, serviceConfig}, nil
}

func (j *OutboxJob) Start(cronRunner *cron.Cron) error {
	timeline, err := j.serviceConfig.GetStringConfig(context.Background(), services.CONFIG_CRONJOB_TIME_OUTBOX, services.DEFAULT_CRONJOB_TIME_OUTBOX)
	if err != nil {
		log.Println(err)
	}

	_, err = cronRunner.AddFunc(timeline, j.runScheduledTask)
	log.Println("Outbox Cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", timeline, err)
	return err
}

func (j *OutboxJob) runScheduledTask() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.serviceOutbox.RelayPending(ctx)
	if errors.Is(err, services.ErrOutboxLock) {
		return
	}
	if err != nil {
		log.Println("relay out messages:", err)
		return
	}
	if n > 0 {
		log.Println("Relayed out messages:", n)
	}
}
