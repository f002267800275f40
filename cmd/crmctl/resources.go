package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-crm-backend/pkg/client"
)

// ============================================
// Customers
// ============================================

func (a *app) customers(args []string) error {
	action, rest := splitAction(args)
	return a.withSession(func(c *client.Client) error {
		switch action {
		case "list":
			fs := newFlagSet("customers list")
			q := fs.String("q", "", "search name, email or company")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			list, err := c.ListCustomers(a.ctx, *q)
			if err != nil {
				return err
			}
			tw := newTable(a.out, "ID", "NAME", "EMAIL", "COMPANY", "INTERACTIONS")
			for _, cu := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", cu.ID, cu.Name, cu.Email, cu.Company, len(cu.Interactions))
			}
			return tw.Flush()

		case "get":
			id, err := requireID(newFlagSet("customers get"), rest)
			if err != nil {
				return err
			}
			cu, err := c.GetCustomer(a.ctx, id)
			if err != nil {
				return err
			}
			return a.printJSON(cu)

		case "create":
			fs := newFlagSet("customers create")
			var req client.CustomerRequest
			fs.StringVar(&req.Name, "name", "", "customer name")
			fs.StringVar(&req.Email, "email", "", "customer email")
			fs.StringVar(&req.Phone, "phone", "", "phone number")
			fs.StringVar(&req.Company, "company", "", "company")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			cu, err := c.CreateCustomer(a.ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created customer %s\n", cu.ID)
			return nil

		case "update":
			fs := newFlagSet("customers update")
			name := fs.String("name", "", "customer name")
			email := fs.String("email", "", "customer email")
			phone := fs.String("phone", "", "phone number")
			company := fs.String("company", "", "company")
			id, err := requireID(fs, rest)
			if err != nil {
				return err
			}
			seen := setFlags(fs)
			cu, err := c.UpdateCustomer(a.ctx, id, client.CustomerPatch{
				Name:    optString(seen, "name", *name),
				Email:   optString(seen, "email", *email),
				Phone:   optString(seen, "phone", *phone),
				Company: optString(seen, "company", *company),
			})
			if err != nil {
				return err
			}
			return a.printJSON(cu)

		case "interact":
			fs := newFlagSet("customers interact")
			var req client.InteractionRequest
			fs.StringVar(&req.Type, "type", "", "call, email or meeting")
			fs.StringVar(&req.Notes, "notes", "", "notes")
			id, err := requireID(fs, rest)
			if err != nil {
				return err
			}
			cu, err := c.AddInteraction(a.ctx, id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Customer %s now has %d interactions\n", cu.ID, len(cu.Interactions))
			return nil

		case "delete":
			id, err := requireID(newFlagSet("customers delete"), rest)
			if err != nil {
				return err
			}
			if err := c.DeleteCustomer(a.ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted customer %s\n", id)
			return nil
		}
		return fmt.Errorf("unknown customers action: %s", action)
	})
}

// ============================================
// Leads
// ============================================

func (a *app) leads(args []string) error {
	action, rest := splitAction(args)
	return a.withSession(func(c *client.Client) error {
		switch action {
		case "list":
			fs := newFlagSet("leads list")
			var q client.LeadQuery
			fs.StringVar(&q.Stage, "stage", "", "filter by stage")
			fs.StringVar(&q.Source, "source", "", "filter by source")
			fs.StringVar(&q.Customer, "customer", "", "filter by customer id")
			fs.StringVar(&q.Search, "q", "", "search title and notes")
			fs.StringVar(&q.SortBy, "sort", "", "date, value or stage")
			fs.StringVar(&q.Order, "order", "", "asc or desc")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			list, err := c.ListLeads(a.ctx, q)
			if err != nil {
				return err
			}
			tw := newTable(a.out, "ID", "TITLE", "CUSTOMER", "STAGE", "SOURCE", "VALUE")
			for _, l := range list {
				customer := l.CustomerID
				if l.Customer != nil {
					customer = l.Customer.Name
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\n", l.ID, l.Title, customer, l.Stage, l.Source, l.Value)
			}
			return tw.Flush()

		case "get":
			id, err := requireID(newFlagSet("leads get"), rest)
			if err != nil {
				return err
			}
			l, err := c.GetLead(a.ctx, id)
			if err != nil {
				return err
			}
			return a.printJSON(l)

		case "create":
			fs := newFlagSet("leads create")
			var req client.LeadRequest
			fs.StringVar(&req.Customer, "customer", "", "customer id")
			fs.StringVar(&req.Title, "title", "", "lead title")
			fs.StringVar(&req.Source, "source", "", "lead source")
			fs.StringVar(&req.Stage, "stage", "", "initial stage (default New)")
			fs.Float64Var(&req.Value, "value", 0, "deal value")
			fs.StringVar(&req.Notes, "notes", "", "notes")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			l, err := c.CreateLead(a.ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created lead %s\n", l.ID)
			return nil

		case "update":
			fs := newFlagSet("leads update")
			customer := fs.String("customer", "", "customer id")
			title := fs.String("title", "", "lead title")
			source := fs.String("source", "", "lead source")
			stage := fs.String("stage", "", "stage")
			value := fs.Float64("value", 0, "deal value")
			notes := fs.String("notes", "", "notes")
			id, err := requireID(fs, rest)
			if err != nil {
				return err
			}
			seen := setFlags(fs)
			patch := client.LeadPatch{
				Customer: optString(seen, "customer", *customer),
				Title:    optString(seen, "title", *title),
				Source:   optString(seen, "source", *source),
				Stage:    optString(seen, "stage", *stage),
				Notes:    optString(seen, "notes", *notes),
			}
			if seen["value"] {
				patch.Value = value
			}
			l, err := c.UpdateLead(a.ctx, id, patch)
			if err != nil {
				return err
			}
			return a.printJSON(l)

		case "delete":
			id, err := requireID(newFlagSet("leads delete"), rest)
			if err != nil {
				return err
			}
			if err := c.DeleteLead(a.ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted lead %s\n", id)
			return nil
		}
		return fmt.Errorf("unknown leads action: %s", action)
	})
}

// ============================================
// Tasks
// ============================================

// parseRelated accepts "customer:<id>", "lead:<id>" or "none".
func parseRelated(value string) (*client.RelatedInput, error) {
	if value == "none" {
		return &client.RelatedInput{Type: "none"}, nil
	}
	kind, id, ok := strings.Cut(value, ":")
	if !ok || id == "" || (kind != "customer" && kind != "lead") {
		return nil, fmt.Errorf("invalid --related %q: want customer:<id>, lead:<id> or none", value)
	}
	return &client.RelatedInput{Type: kind, ID: id}, nil
}

func (a *app) tasks(args []string) error {
	action, rest := splitAction(args)
	return a.withSession(func(c *client.Client) error {
		switch action {
		case "list":
			fs := newFlagSet("tasks list")
			var q client.TaskQuery
			fs.StringVar(&q.Status, "status", "", "filter by status")
			fs.StringVar(&q.Priority, "priority", "", "filter by priority")
			fs.StringVar(&q.RelatedToModel, "related-model", "", "Customer or Lead")
			fs.StringVar(&q.DueDate, "due", "", "today, this-week, overdue or upcoming")
			fs.StringVar(&q.SortBy, "sort", "", "dueDate, priority, status or createdAt")
			fs.StringVar(&q.Order, "order", "", "asc or desc")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			list, err := c.ListTasks(a.ctx, q)
			if err != nil {
				return err
			}
			tw := newTable(a.out, "ID", "TITLE", "DUE", "STATUS", "PRIORITY", "RELATED")
			for _, t := range list {
				related := "-"
				if t.RelatedTo != nil {
					related = t.RelatedTo.Type + ":" + t.RelatedTo.ID
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.DueDate.Local().Format(time.DateOnly), t.Status, t.Priority, related)
			}
			return tw.Flush()

		case "get":
			id, err := requireID(newFlagSet("tasks get"), rest)
			if err != nil {
				return err
			}
			t, err := c.GetTask(a.ctx, id)
			if err != nil {
				return err
			}
			return a.printJSON(t)

		case "create":
			fs := newFlagSet("tasks create")
			var req client.TaskRequest
			related := fs.String("related", "", "customer:<id> or lead:<id>")
			fs.StringVar(&req.Title, "title", "", "task title")
			fs.StringVar(&req.Description, "description", "", "description")
			fs.StringVar(&req.DueDate, "due", "", "due date (YYYY-MM-DD or RFC3339)")
			fs.StringVar(&req.Status, "status", "", "status (default Not Started)")
			fs.StringVar(&req.Priority, "priority", "", "priority (default Medium)")
			if err := fs.Parse(rest); err != nil {
				return err
			}
			if *related != "" {
				rel, err := parseRelated(*related)
				if err != nil {
					return err
				}
				req.RelatedTo = rel
			}
			t, err := c.CreateTask(a.ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created task %s\n", t.ID)
			return nil

		case "update":
			fs := newFlagSet("tasks update")
			title := fs.String("title", "", "task title")
			description := fs.String("description", "", "description")
			due := fs.String("due", "", "due date")
			status := fs.String("status", "", "status")
			priority := fs.String("priority", "", "priority")
			related := fs.String("related", "", "customer:<id>, lead:<id> or none")
			id, err := requireID(fs, rest)
			if err != nil {
				return err
			}
			seen := setFlags(fs)
			patch := client.TaskPatch{
				Title:       optString(seen, "title", *title),
				Description: optString(seen, "description", *description),
				DueDate:     optString(seen, "due", *due),
				Status:      optString(seen, "status", *status),
				Priority:    optString(seen, "priority", *priority),
			}
			if seen["related"] {
				if patch.RelatedTo, err = parseRelated(*related); err != nil {
					return err
				}
			}
			t, err := c.UpdateTask(a.ctx, id, patch)
			if err != nil {
				return err
			}
			return a.printJSON(t)

		case "delete":
			id, err := requireID(newFlagSet("tasks delete"), rest)
			if err != nil {
				return err
			}
			if err := c.DeleteTask(a.ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted task %s\n", id)
			return nil
		}
		return fmt.Errorf("unknown tasks action: %s", action)
	})
}

// ============================================
// Dashboard
// ============================================

func (a *app) dashboard(args []string) error {
	action := "stats"
	if len(args) > 0 {
		action = args[0]
	}
	return a.withSession(func(c *client.Client) error {
		switch action {
		case "stats":
			stats, err := c.DashboardStats(a.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Customers: %d  Leads: %d  Tasks: %d  Due today: %d\n\n",
				stats.Counts.Customers, stats.Counts.Leads, stats.Counts.Tasks, stats.Counts.TasksDueToday)
			tw := newTable(a.out, "STAGE", "COUNT", "VALUE")
			for _, s := range stats.LeadsByStage {
				fmt.Fprintf(tw, "%s\t%d\t%.2f\n", s.Stage, s.Count, s.Value)
			}
			return tw.Flush()

		case "performance":
			days, err := c.LeadPerformance(a.ctx)
			if err != nil {
				return err
			}
			tw := newTable(a.out, "DATE", "LEADS", "VALUE")
			for _, d := range days {
				fmt.Fprintf(tw, "%s\t%d\t%.2f\n", d.Date, d.Count, d.Value)
			}
			return tw.Flush()
		}
		return fmt.Errorf("unknown dashboard action: %s", action)
	})
}
