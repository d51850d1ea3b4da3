package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PaulBabatuyi/campusMarket-gRPC/internal/market"
)

// changed returns &v when the flag was given on the command line.
func changed[T any](cmd *cobra.Command, name string, v T) *T {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func rupees(p int64) string { return fmt.Sprintf("₹%d", p) }

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Local().Format("2 Jan 2006")
}

func printProducts(w io.Writer, products []market.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCONDITION\tCATEGORY\tSELLER\tLISTED")
	for _, p := range products {
		price := rupees(p.Price)
		if p.Negotiable {
			price += " (neg.)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, price, p.Condition, p.Category, p.SellerName, ago(p.CreatedAt))
	}
	_ = tw.Flush()
}

func printSellerListings(w io.Writer, l sellerListings) {
	fmt.Fprintf(w, "Active: %d  Sold: %d", l.Counts.Active, l.Counts.Sold)
	if l.Counts.Reserved > 0 {
		fmt.Fprintf(w, "  Reserved: %d", l.Counts.Reserved)
	}
	fmt.Fprintln(w)
	if len(l.Listings) == 0 {
		fmt.Fprintln(w, "You haven't listed anything yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTATUS\tLISTED")
	for _, p := range l.Listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, rupees(p.Price), p.Status, ago(p.CreatedAt))
	}
	_ = tw.Flush()
}

func printProduct(w io.Writer, p market.Product) {
	fmt.Fprintf(w, "%s  %s\n", p.Name, rupees(p.Price))
	fmt.Fprintf(w, "  id:        %s\n", p.ID)
	fmt.Fprintf(w, "  status:    %s\n", p.Status)
	fmt.Fprintf(w, "  condition: %s\n", p.Condition)
	fmt.Fprintf(w, "  category:  %s\n", p.Category)
	fmt.Fprintf(w, "  location:  %s\n", p.Location)
	fmt.Fprintf(w, "  seller:    %s\n", p.SellerName)
	if p.Negotiable {
		fmt.Fprintln(w, "  price is negotiable")
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	for _, img := range p.Images {
		fmt.Fprintf(w, "  image: %s\n", img)
	}
}

func printConversations(w io.Writer, convs []market.Conversation) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tNAME\tUNREAD\tLAST\tWHEN")
	for _, c := range convs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", c.OtherUserID, c.Name, c.UnreadCount, truncate(c.LastMessage, 40), ago(c.LastMessageAt))
	}
	_ = tw.Flush()
}

func printThread(w io.Writer, me string, msgs []market.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages.")
		return
	}
	for _, m := range msgs {
		who := "them"
		if m.SenderID == me {
			who = "you"
		}
		mark := ""
		if who == "them" && !m.Read {
			mark = " •"
		}
		fmt.Fprintf(w, "[%s] %s: %s%s\n", m.Timestamp.Local().Format("02 Jan 15:04"), who, m.Content, mark)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
