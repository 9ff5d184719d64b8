package natsgath

import (
	"fmt"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/gatherer"
)

func sender(pub Publisher, subject string) gatherer.SendFunc {
	return func(msgType api.MsgType, body []byte) error {
		if err := pub.Publish(subject, body); err != nil {
			return fmt.Errorf("publish %s to %s: %w", msgType, subject, err)
		}
		return nil
	}
}
