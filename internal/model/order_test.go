package model

import "testing"

func TestCanTransition(t *testing.T) {
    allowed := []struct{ from, to OrderStatus }{
        {OrderPending, OrderConfirmed},
        {OrderPending, OrderCancelled},
        {OrderConfirmed, OrderReady},
        {OrderConfirmed, OrderPicked},
        {OrderConfirmed, OrderCancelled},
        {OrderReady, OrderPicked},
        {OrderReady, OrderCancelled},
        {OrderPicked, OrderCompleted},
    }
    for _, tc := range allowed {
        if !CanTransition(tc.from, tc.to) {
            t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
        }
    }

    denied := []struct{ from, to OrderStatus }{
        {OrderPicked, OrderCancelled},
        {OrderCompleted, OrderCancelled},
        {OrderCancelled, OrderConfirmed},
        {OrderCompleted, OrderPicked},
        {OrderReady, OrderConfirmed},
        {OrderPending, OrderPicked},
        {OrderConfirmed, OrderCompleted},
    }
    for _, tc := range denied {
        if CanTransition(tc.from, tc.to) {
            t.Errorf("%s -> %s should be denied", tc.from, tc.to)
        }
    }
}

func TestTransitionsInto(t *testing.T) {
    cases := []struct {
        target OrderStatus
        want   []OrderStatus
    }{
        {OrderPicked, []OrderStatus{OrderConfirmed, OrderReady}},
        {OrderReady, []OrderStatus{OrderConfirmed}},
        {OrderCancelled, []OrderStatus{OrderPending, OrderConfirmed, OrderReady}},
        {OrderCompleted, []OrderStatus{OrderPicked}},
        {OrderPending, nil},
    }
    for _, tc := range cases {
        got := TransitionsInto(tc.target)
        if len(got) != len(tc.want) {
            t.Fatalf("TransitionsInto(%s) = %v, want %v", tc.target, got, tc.want)
        }
        for i := range got {
            if got[i] != tc.want[i] {
                t.Fatalf("TransitionsInto(%s) = %v, want %v", tc.target, got, tc.want)
            }
        }
        for _, from := range got {
            if !CanTransition(from, tc.target) {
                t.Fatalf("TransitionsInto(%s) lists %s but CanTransition denies it", tc.target, from)
            }
        }
    }
}
