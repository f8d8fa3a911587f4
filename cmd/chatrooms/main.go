package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"traveleon/internal/adapter/repository"
	"traveleon/internal/domain/entity"
	"traveleon/internal/infrastructure/firebase"
	"traveleon/internal/infrastructure/storage"
	"traveleon/internal/usecase"
	"traveleon/pkg/config"
)

var (
	sellerID   string
	watch      bool
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chatrooms",
		Short: "Inspect a seller's chat list as the app shows it",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the seller's chat rooms, newest activity first",
		RunE:  runList,
	}
	listCmd.Flags().StringVarP(&sellerID, "seller", "s", "", "seller uid (required)")
	listCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep the subscription open and reprint on every change")
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	listCmd.MarkFlagRequired("seller")

	rootCmd.AddCommand(listCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		return err
	}
	defer clients.Close()

	var avatars usecase.AvatarResolver
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, clients.ClientOptions()...)
		if err != nil {
			return err
		}
		defer storageClient.Close()
		avatars = storageClient
	}

	rooms := repository.NewFirestoreChatRoomRepository(clients.Firestore)
	profiles := repository.NewFirestoreProfileRepository(clients.Firestore)
	messages := repository.NewFirestoreMessageRepository(clients.Firestore)

	resolver := usecase.NewEnrichmentResolver(profiles, messages, avatars, usecase.ResolverOptions{
		Concurrency: cfg.EnrichConcurrency,
		Timeout:     cfg.EnrichTimeout,
	})

	out := cmd.OutOrStdout()

	if !watch {
		views, err := usecase.NewChatUseCase(rooms, profiles, messages, resolver).ListSellerRooms(ctx, sellerID)
		if err != nil {
			return err
		}
		return printRooms(out, views)
	}

	subscriber := usecase.NewRoomSubscriber(rooms, usecase.SubscriberOptions{
		MaxAttempts:    cfg.SubscribeMaxAttempts,
		InitialBackoff: cfg.SubscribeInitialBackoff,
		MaxBackoff:     cfg.SubscribeMaxBackoff,
	})

	gate := usecase.NewSessionGate()
	engine := usecase.NewChatListEngine(gate, subscriber, resolver)
	snapshots, stopWatch := engine.Watch()
	defer stopWatch()

	gate.SignIn(sellerID)
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	for snap := range snapshots {
		switch snap.State {
		case usecase.StateLive:
			fmt.Fprintf(out, "--- %s (%d rooms)\n", time.Now().Format(time.TimeOnly), len(snap.Rooms))
			if err := printRooms(out, snap.Rooms); err != nil {
				return err
			}
		case usecase.StateFailed:
			stop()
			<-done
			return snap.Err
		default:
			fmt.Fprintf(os.Stderr, "state: %s\n", snap.State)
		}
	}
	return <-done
}

func printRooms(out io.Writer, views []entity.ChatRoomView) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if views == nil {
			views = []entity.ChatRoomView{}
		}
		return enc.Encode(views)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tBUYER\tSTATUS\tREAD\tLAST MESSAGE\tAT")
	for _, v := range views {
		at := "-"
		if v.Timestamp > 0 {
			at = time.UnixMilli(v.Timestamp).Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n", v.ID, v.BuyerName, v.Status, v.Read, v.LastMessage, at)
	}
	return w.Flush()
}
