package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	Subscribe(bus, TopicResumeChanged, func(e ResumeChanged) { got = append(got, "first:"+e.ResumePath) })
	Subscribe(bus, TopicResumeChanged, func(e ResumeChanged) { got = append(got, "second:"+e.ResumePath) })

	Publish(bus, TopicResumeChanged, ResumeChanged{ResumePath: "a.json"})

	assert.Equal(t, []string{"first:a.json", "second:a.json"}, got)
}

func TestPublish_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	themeCalls := 0
	Subscribe(bus, TopicThemeChanged, func(ThemeChanged) { themeCalls++ })

	Publish(bus, TopicResumeChanged, ResumeChanged{ResumePath: "x"})

	assert.Equal(t, 0, themeCalls)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsub := Subscribe(bus, TopicAfterPrint, func(PrintPhase) { calls++ })

	Publish(bus, TopicAfterPrint, PrintPhase{})
	unsub()
	unsub()
	Publish(bus, TopicAfterPrint, PrintPhase{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Subscribers(TopicAfterPrint.Name()))
}

func TestSubscribeOnce(t *testing.T) {
	bus := NewBus()
	var seen []string
	SubscribeOnce(bus, TopicResumeChanged, func(e ResumeChanged) { seen = append(seen, e.ResumePath) })

	Publish(bus, TopicResumeChanged, ResumeChanged{ResumePath: "one"})
	Publish(bus, TopicResumeChanged, ResumeChanged{ResumePath: "two"})

	assert.Equal(t, []string{"one"}, seen)
}

func TestPublish_HandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewBus()
	calls := 0
	var unsub func()
	unsub = Subscribe(bus, TopicBeforePrint, func(PrintPhase) {
		calls++
		unsub()
	})

	Publish(bus, TopicBeforePrint, PrintPhase{})
	Publish(bus, TopicBeforePrint, PrintPhase{})

	assert.Equal(t, 1, calls)
}

func TestPublish_ConcurrentPublishers(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	Subscribe(bus, TopicSelectChange, func(SelectChange) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Publish(bus, TopicSelectChange, SelectChange{SelectID: "resume-select"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestKeyEvent(t *testing.T) {
	k := &KeyEvent{Key: "r", Meta: true}
	require.True(t, k.HasModifier())
	assert.True(t, k.Is("R"))
	assert.False(t, k.DefaultPrevented())

	k.PreventDefault()
	assert.True(t, k.DefaultPrevented())

	assert.False(t, (&KeyEvent{Key: "r", Alt: true}).HasModifier())
}
