package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/translachat-server/internal/app"
	"github.com/vovakirdan/translachat-server/internal/store"
)

func newRoomsCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms and their latest messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rooms, err := st.ListRooms(cmd.Context(), "", store.RoomFilterAll)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderRooms(out, rooms)

			if limit <= 0 {
				return nil
			}
			for _, room := range rooms {
				msgs, err := st.ListMessages(cmd.Context(), room.ID, limit)
				if err != nil {
					return err
				}
				renderMessages(out, room, msgs)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "messages", 0, "show the latest N messages of every room")
	return cmd
}

func renderRooms(out io.Writer, rooms []*store.Room) {
	fmt.Fprintln(out, color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf(" %d rooms ", len(rooms))))

	table := newTable(out, []string{"ID", "Name", "Creator", "Members", "Created"})
	for _, r := range rooms {
		table.Append([]string{
			r.ID,
			r.Name,
			r.CreatorID,
			strconv.Itoa(r.MemberCount),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

func renderMessages(out io.Writer, room *store.Room, msgs []*store.Message) {
	fmt.Fprintln(out, color.New(color.BgBlack, color.FgCyan).Render(" "+room.Name+" "))

	table := newTable(out, []string{"Time", "Sender", "Lang", "Text"})
	for _, m := range msgs {
		table.Append([]string{
			m.CreatedAt.Format("15:04:05"),
			m.SenderName,
			m.SenderLanguage,
			m.OriginalText,
		})
	}
	table.Render()
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
