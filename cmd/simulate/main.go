package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"razorpay-checkout/internal/config"
	"razorpay-checkout/internal/database"
	"razorpay-checkout/internal/infrastructure/payment"
	"razorpay-checkout/internal/repo"
	"razorpay-checkout/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// simulate drives start/confirm cycles against the mock gateway and prints
// the stored state after each one. Some callbacks are forged or replayed.
func main() {
	n := flag.Int("n", 20, "number of orders")
	failRate := flag.Int("gateway-fail", 10, "percent of create-order calls that fail")
	driver := flag.String("store", config.StoreBolt, "order store: bolt or postgres")
	flag.Parse()

	_ = godotenv.Load()
	ctx := context.Background()
	logger := zap.NewNop()

	var orderRepo repo.OrderRepo
	switch *driver {
	case config.StorePostgres:
		dbCfg, err := config.LoadDB()
		if err != nil {
			log.Fatalf("load db config: %v", err)
		}
		db, err := database.Open(ctx, dbCfg.DSN())
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
		orderRepo = repo.NewOrderRepo(db)
	default:
		dir, err := os.MkdirTemp("", "simulate")
		if err != nil {
			log.Fatal(err)
		}
		defer os.RemoveAll(dir)
		store, err := repo.NewBoltOrderRepo(filepath.Join(dir, "orders.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		orderRepo = store
	}

	gateway := payment.NewMockGateway("simulate_secret", payment.WithFailureRate(*failRate))
	orderService := service.NewOrderService(orderRepo, gateway, logger)

	fmt.Printf("--- STARTING SIMULATION (%d ORDERS) ---\n", *n)
	for i := 0; i < *n; i++ {
		amount := fmt.Sprintf("%d.%02d", 1+rand.IntN(5000), rand.IntN(100))

		// 1. Start
		started, err := orderService.StartPayment(ctx, amount, fmt.Sprintf("Report #%d", i+1))
		if err != nil {
			fmt.Printf("[%d] Start FAILED: %v\n", i+1, err)
			continue
		}
		orderID := started.Order.GatewayOrderID

		// 2. Customer pays; sometimes the callback is forged
		paymentID, sig, err := gateway.Pay(orderID)
		if err != nil {
			log.Printf("pay %s: %v", orderID, err)
			continue
		}
		forged := rand.IntN(100) < 15
		if forged {
			sig = payment.Sign("attacker", orderID, paymentID)
		}

		fmt.Printf("[%d] Confirming %s (%s INR, forged=%v) ... ", i+1, orderID, amount, forged)
		_, err = orderService.ConfirmPayment(ctx, callback(orderID, paymentID, sig))
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
		} else {
			fmt.Printf("SUCCESS\n")
			// 3. Replay the same callback; must not change anything
			if rand.IntN(100) < 30 {
				replay, err := orderService.ConfirmPayment(ctx, callback(orderID, paymentID, sig))
				fmt.Printf("    -> replay: already_paid=%v err=%v\n", replay != nil && replay.AlreadyPaid, err)
			}
		}

		fresh, err := orderRepo.FindByGatewayOrderID(ctx, orderID)
		if err != nil {
			log.Printf("reload %s: %v", orderID, err)
			continue
		}
		fmt.Printf("    -> DB is_paid: %v payment: %q\n", fresh.IsPaid, fresh.GatewayPaymentID)
		fmt.Println("---------------------------------------------------")
	}
}

func callback(orderID, paymentID, sig string) []byte {
	inner, _ := json.Marshal(service.Callback{OrderID: orderID, PaymentID: paymentID, Signature: sig})
	outer, _ := json.Marshal(string(inner))
	return outer
}
